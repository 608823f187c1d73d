// Package notice turns engine outcomes and rejections into short,
// localised messages for renderers.
//
// The engine only reports codes (outcomes, winner, sentinel errors). This
// package maps them to stable notice Codes and renders those through a
// golang.org/x/text catalogue loaded from the embedded locales/*.yaml files.
// English and Russian are shipped; unknown locales fall back to English.
package notice
