package services

import (
	"encoding/binary"

	"wagerd/internal/models"
)

// RangeStore is the byte cache behind BookCache.
type RangeStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
}

var byteOrder = binary.LittleEndian

var cachedUnits = []models.Unit{models.UnitPages, models.UnitChapters}

// entrySize holds Start and End followed by the six inputs they were computed
// from, each as a little-endian int64.
const entrySize = 8 * 8

// BookCache memoizes effective ranges per book and unit. Each entry carries the
// totals and preferences it was computed from, and a hit is only served when
// they match the caller's book. A reader with different preferences for the
// same book ID overwrites the entry instead of reading it.
type BookCache struct {
	store RangeStore
}

func NewBookCache(store RangeStore) *BookCache {
	return &BookCache{store: store}
}

func rangeKey(bookID string, unit models.Unit) string {
	return "range:" + string(unit) + ":" + bookID
}

func rangeInputs(book models.Book) [6]int {
	p := book.Preferences
	return [6]int{book.TotalPages, book.TotalChapters, p.SkipFrontMatter, p.SkipBackMatter, p.CustomStart, p.CustomEnd}
}

func encodeRange(r models.Range, inputs [6]int) []byte {
	buf := make([]byte, entrySize)
	byteOrder.PutUint64(buf[0:8], uint64(int64(r.Start)))
	byteOrder.PutUint64(buf[8:16], uint64(int64(r.End)))
	for i, v := range inputs {
		off := 16 + i*8
		byteOrder.PutUint64(buf[off:off+8], uint64(int64(v)))
	}
	return buf
}

func decodeRange(data []byte, inputs [6]int) (models.Range, bool) {
	if len(data) != entrySize {
		return models.Range{}, false
	}
	for i, v := range inputs {
		off := 16 + i*8
		if int(int64(byteOrder.Uint64(data[off:off+8]))) != v {
			return models.Range{}, false
		}
	}
	return models.Range{
		Start: int(int64(byteOrder.Uint64(data[0:8]))),
		End:   int(int64(byteOrder.Uint64(data[8:16]))),
	}, true
}

func (bc *BookCache) EffectiveRange(book models.Book, unit models.Unit) (models.Range, error) {
	if unit == "" {
		unit = models.UnitPages
	}
	if book.ID == "" {
		return book.EffectiveRange(unit)
	}

	key := rangeKey(book.ID, unit)
	inputs := rangeInputs(book)
	if data, ok := bc.store.Get(key); ok {
		if r, hit := decodeRange(data, inputs); hit {
			return r, nil
		}
	}

	r, err := book.EffectiveRange(unit)
	if err != nil {
		return models.Range{}, err
	}
	bc.store.Set(key, encodeRange(r, inputs))
	return r, nil
}

func (bc *BookCache) Invalidate(bookID string) {
	for _, unit := range cachedUnits {
		bc.store.Del(rangeKey(bookID, unit))
	}
}
