// Package kernel computes Mandelbrot escape counts for a view and turns
// them into colored images.
//
// Backends:
//   - [CPU] float64 while pixel spacing allows it, double-double below that
//   - [OpenGL] GLSL 4.3 compute shader in double-double; needs a current
//     GL context, so only the window front end can use it
//
// [Renderer] supersamples by the view's AA factor, colors through the
// palette table and downsamples to the requested size.
//
// # Example
//
//	r := kernel.NewRenderer(kernel.NewCPU(0))
//	img, err := r.Render(state, palette.Table(), 640, 480)
package kernel
