package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrCompressedUpload  = errors.New("compressed uploads are not accepted; the layout parser requires uncompressed PDFs")
	ErrParserUnavailable = errors.New("document parser endpoint is not configured")
	ErrSearchUnavailable = errors.New("search is temporarily unavailable")
	ErrUnknownTheme      = errors.New("unknown dataset theme")
)
