package memstore

import "sort"

func sortKeysBySeqDesc(keys []string, seq map[string]int64) {
	sort.Slice(keys, func(i, j int) bool {
		return seq[keys[i]] > seq[keys[j]]
	})
}

func ptr[T any](v T) *T {
	return &v
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
