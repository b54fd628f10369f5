// Package encode writes recorded frames to disk.
//
// Sinks:
//   - [Y4M] raw YUV4MPEG2 4:2:0, BT.601 full range
//   - [GIF] animated GIF dithered onto the Plan 9 palette
//   - [PNGSequence] one PNG per frame
//   - [FFmpeg] Y4M piped into an ffmpeg process for mp4, mkv, webm, ...
//
// [Open] chooses a sink from the output path.
package encode
