/*
Package session keeps one executor per conversation for servers that host
many callers at once.

Each session owns an executor built by a Factory. Callers that mutate a
session (invoke a prompt, clear it) go through WithLock, which serializes
turns on the same session while leaving other sessions free to run.
*/
package session
