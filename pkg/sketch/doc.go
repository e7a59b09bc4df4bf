// Package sketch defines the planar sketch data model for sketchsolve.
// A sketch is an insertion-ordered collection of geometric entities
// (points, lines, circles, arcs) and the constraints that relate them.
// Only point positions are solver variables; everything else is read.
package sketch
