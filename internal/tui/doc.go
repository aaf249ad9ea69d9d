// Package tui is the terminal surface of runboard.
//
// The [Model] renders the same dashboard the web page shows, driven by a
// store listener, and maps keys onto the controller actions. Terminal focus
// stands in for page visibility: losing focus pauses polling and regaining
// it resumes.
package tui
