/*
Package procgen is a procedural geometry and scalar field toolkit.

The root package holds the vector and matrix algebra shared by the
subpackages: 2D and 3D vectors are gonum's r2.Vec and r3.Vec, 4D vectors
are Vec4 and transforms are column-major float32 Mat4 matrices.

	mesh     indexed triangle and quad meshes, ear clipping triangulation, Catmull-Clark subdivision, welding, extrusion
	outline  closed 2D outlines with fillets, chamfers and arcs
	field    dense 2D/3D scalar grids, resampling, white, value, Perlin and simplex noise
	terrain  heightmaps built from fields
	meshio   Wavefront OBJ and STL encoding
	fieldio  PNG and histogram output for fields
	report   CSV statistics for meshes and fields
*/
package procgen
