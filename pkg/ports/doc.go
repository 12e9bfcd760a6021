/*
Package ports defines the driven ports (interfaces) honey depends on.

These interfaces decouple prompt dispatch from where templates live, so the
same prompts can be served from a directory of .hny files, a markdown
repository, Redis or memory.

# Key Interfaces

  - TemplateStore: resolves a prompt name to its template text and lists names.
  - TemplateWriter: stores that accept new or updated templates at runtime.
  - Watchable: stores that can signal that their contents changed.
*/
package ports
