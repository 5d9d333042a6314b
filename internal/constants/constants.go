// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Pagination policy
const (
	// PhotosPerPage is the number of photo slots on a photo page (2x2 grid)
	PhotosPerPage = 4

	// AttendancePerPage is the number of attendance sheets per page
	AttendancePerPage = 1
)

// Page geometry, in CSS pixels at the 96 DPI reference resolution.
const (
	// PageWidthPx approximates 210mm at 96 DPI
	PageWidthPx = 794

	// PageHeightPx approximates 297mm at 96 DPI
	PageHeightPx = 1123

	// PagePaddingPx approximates the 15mm page padding
	PagePaddingPx = 57

	// PixelRatio is the rasterization oversampling factor
	PixelRatio = 2

	// PageWidthMM and PageHeightMM are the physical A4 dimensions
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

// Image encoding constants
const (
	// CropJPEGQuality matches a 0.95 canvas encoder quality
	CropJPEGQuality = 95

	// PreviewMaxSize is the maximum preview dimension before downscaling
	PreviewMaxSize = 1600
)

// Export constants
const (
	// OutputFileName is the fixed name of the exported report
	OutputFileName = "IIC-Event-Report.pdf"
)

// File upload constants
const (
	// MaxUploadSize is the maximum file upload size in bytes (100MB)
	MaxUploadSize = 100 << 20
)
