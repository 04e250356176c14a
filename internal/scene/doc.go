// Package scene is the renderer-neutral 3D data model for the cell grid.
//
// A [Scene] owns the set of [Mesh] values currently visible, together with
// the one-shot [Setup] (background, lights, grid and axes helpers). A
// [Camera] projects world coordinates onto an output surface of any size.
//
// Renderers in render/term and render/gui read a Scene and a Camera each
// frame; they never mutate either.
package scene
