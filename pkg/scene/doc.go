// Package scene implements the building editor's document model: a typed
// scene tree stored as a flat id-keyed arena, a closed schema registry for
// node kinds, and JSON serialization of whole documents.
package scene
