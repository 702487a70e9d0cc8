// Package rgbatlas decodes compressed images into RGBA8 pixel buffers and packs
// multiple decoded images into a single fixed-column atlas.
//
// JPEG streams are handled by a fast pure-Go decoder, any other registered format
// (PNG, GIF, BMP, TIFF, WebP, OpenEXR) by the standard image registry. Atlas compositing
// places tiles in row-major order, the first tile defines the size of interior
// cells and the last tile the size of the last row and column.
package rgbatlas
