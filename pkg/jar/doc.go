/*
Package jar defines executors: stateful conversation sessions bound to a
text-generation backend, and the ambient registers that make one of them
"active" for a call path.

An executor (historically a "jar") owns one conversation log. Prompts called
while an executor is active become turns of that conversation:

	mock := jar.NewMock()
	ctx, tok := jar.Enter(ctx, mock)
	defer jar.Exit(tok)

	reply, err := greet.Call(ctx, domain.Vars{"name": "Ada"})

Two registers exist and never affect each other: the sync register consulted
by blocking calls (Enter, Active, Use) and the async register consulted by
calls that return a task.Future (EnterAsync, ActiveAsync, UseAsync).

Vendor executors live in the openai, anthropic and gemini subpackages; they
all embed Base, which implements the conversation operations and the turn
sequence shared by every variant.
*/
package jar
