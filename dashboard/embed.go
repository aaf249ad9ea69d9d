// Package dashboard provides the embedded web UI assets for runboard.
//
// The page subscribes to "/api/sse" while the browser tab is visible and
// closes the stream when it is hidden, which is what pauses and resumes
// backend polling on the server side.
//
// The embedded assets are served by the server package at the root path ("/").
// Users of the runboard library should not need to interact with this
// package directly.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Dashboard page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
