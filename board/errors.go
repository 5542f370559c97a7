package board

import "errors"

var (
	ErrInvalidFEN        = errors.New("invalid FEN")
	ErrInvalidUCI        = errors.New("invalid UCI move")
	ErrIllegalMove       = errors.New("illegal move")
	ErrPromotionRequired = errors.New("promotion piece required")
)
