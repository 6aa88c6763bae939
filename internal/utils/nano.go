package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// IDSize is the length of every generated entity id.
const IDSize = 32

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func NanoID() string {
	return gonanoid.MustGenerate(idAlphabet, IDSize)
}

// NanoIDSize falls back to IDSize for non-positive sizes.
func NanoIDSize(size int) string {
	if size <= 0 {
		size = IDSize
	}
	return gonanoid.MustGenerate(idAlphabet, size)
}
