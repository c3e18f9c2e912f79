package web

import "embed"

// StaticFS embeds the single-page front end (html/css/js).
//
//go:embed static/*
var StaticFS embed.FS
