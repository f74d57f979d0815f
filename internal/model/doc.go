package model

// Package model defines domain data structures shared across the backend:
// download progress events, quality options resolved from source formats,
// playlist entities, and status/phase enums. Structures are designed for
// direct JSON serialization to the presentation layer.
