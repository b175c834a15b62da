package transfer

import (
	"bufio"
	"fmt"
	"io"
)

const DefaultAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GeneratePayload writes size bytes cycling through alphabet. The output is
// deterministic so a received file can be checked against a regenerated
// one.
func GeneratePayload(w io.Writer, size int64, alphabet string) error {
	if size < 0 {
		return fmt.Errorf("negative payload size %d", size)
	}
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}

	bw := bufio.NewWriter(w)
	for i := int64(0); i < size; i++ {
		if err := bw.WriteByte(alphabet[i%int64(len(alphabet))]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
