// Package session keeps the assistant's short-term dialogue memory.
//
// Each assistant connection gets one Session keyed by its connection ID,
// holding the last classified intent, the last city the user mentioned, and
// the last result list, just enough for the gateway to resolve follow-ups
// like "tell me about the second one".
//
// Sessions are in-memory only and replaced wholesale on update (values, not
// pointers, cross the API boundary, so concurrent turns on one connection
// settle to last-write-wins without a session ever being observed half
// mutated). Disconnect clears the session; sessions orphaned by a crash are
// simply lost, which is fine since they were never meant to survive a
// restart.
package session
