/*
Package honey turns named prompt templates into functions that either render
text or drive a conversation with a language model, depending on which executor
is active where they are called.

# Concept

A prompt is a template with a name. Calling it renders the template with the
given variables. If an executor (a "jar") has been entered on the context, the
rendered text is sent to it as the next user turn and the call returns the
model's reply instead. The same prompt code therefore works in tests (no
executor, you get the text), in scripts (a Mock jar) and in production (an
OpenAI, Anthropic, Gemini or OpenAI-compatible jar), with no change at the call
site.

Executors are tracked separately for the blocking path (Call) and the
suspending path (CallAsync, which returns a task.Future). Entering one path
never affects the other.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/cookie-jar-solutions/honey"
		"github.com/cookie-jar-solutions/honey/pkg/domain"
		"github.com/cookie-jar-solutions/honey/pkg/jar"
		"github.com/cookie-jar-solutions/honey/pkg/jar/openai"
	)

	func main() {
		lib, err := honey.New("./prompts") // reads every .hny file under ./prompts
		if err != nil {
			log.Fatal(err)
		}
		ctx := context.Background()

		// No executor: the prompt renders.
		text, _ := lib.Call(ctx, "greetings.hello", domain.Vars{"name": "Ada"})
		fmt.Println(text)

		// With an executor: the prompt becomes a conversation turn.
		ex := openai.New(jar.Config{SystemPrompt: "Be brief."})
		err = jar.Use(ctx, ex, func(ctx context.Context) error {
			reply, err := lib.Call(ctx, "greetings.hello", domain.Vars{"name": "Ada"})
			fmt.Println(reply)
			return err
		})
		if err != nil {
			log.Fatal(err)
		}
	}

# Prompt files

A .hny file holds several prompts separated by lines of three or more dashes.
The first line of each section is its name:

	hello
	Hello, {{ name }}!
	---
	bye
	Goodbye{% if name %}, {{ name }}{% endif %}.

Every file is a module named after its path; prompts are addressed as
"<module>.<prompt>", or by bare name when unique.
*/
package honey
