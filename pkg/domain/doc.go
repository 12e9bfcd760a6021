/*
Package domain contains the core models shared by every part of honey.

It defines the conversation log an executor accumulates, the metadata passed
alongside a rendered prompt, the error vocabulary and the lifecycle events
emitted around each turn. The package is kept free of I/O so that executors,
stores and adapters can depend on it without pulling anything else in.

# Key Entities

  - Message: one entry of a conversation (system, user or assistant).
  - Conversation: the ordered message log plus its message and token counters.
  - Metadata: the prompt name and template text that produced a turn.
  - LifecycleHooks: optional callbacks fired at the start and end of a turn.
*/
package domain
