// Package render draws laid out orders onto output artifacts.
//
// The Assembler walks the page groups of a model.CardSet and issues
// drawing calls on a Canvas. Canvases come from a Target:
//
//   - PDFTarget writes a two-page PDF (front, back) per page group
//   - RasterTarget writes a PNG with the front above the back
//
// Any other output can be added by implementing Canvas and Target. A
// canvas that also implements Labeler gets a caption on every page.
package render
