package footer

import (
	"fmt"

	"parquet_schema/schema"
)

// FileMetaData is the subset of the parquet footer needed to resolve the
// schema and locate column chunks.
type FileMetaData struct {
	Version          int32
	Schema           []schema.Element
	NumRows          int64
	RowGroups        []RowGroup
	KeyValueMetadata []KeyValue
	CreatedBy        string
}

type RowGroup struct {
	Columns             []ColumnChunk
	TotalByteSize       int64
	NumRows             int64
	FileOffset          int64
	TotalCompressedSize int64
	Ordinal             int32
}

type ColumnChunk struct {
	FilePath   string
	FileOffset int64
	MetaData   *ColumnMetaData
}

type ColumnMetaData struct {
	Type                  schema.PhysicalType
	Encodings             []Encoding
	PathInSchema          []string
	Codec                 Codec
	NumValues             int64
	TotalUncompressedSize int64
	TotalCompressedSize   int64
	KeyValueMetadata      []KeyValue
	DataPageOffset        int64
	IndexPageOffset       *int64
	DictionaryPageOffset  *int64
}

// StartOffset returns the offset of the first page of the chunk.
func (m *ColumnMetaData) StartOffset() int64 {
	if m.DictionaryPageOffset != nil && *m.DictionaryPageOffset > 0 && *m.DictionaryPageOffset < m.DataPageOffset {
		return *m.DictionaryPageOffset
	}
	return m.DataPageOffset
}

type KeyValue struct {
	Key   string
	Value *string
}

type Codec int32

const (
	Uncompressed Codec = 0
	Snappy       Codec = 1
	Gzip         Codec = 2
	LZO          Codec = 3
	Brotli       Codec = 4
	LZ4          Codec = 5
	Zstd         Codec = 6
	LZ4Raw       Codec = 7
)

var codecNames = [...]string{"UNCOMPRESSED", "SNAPPY", "GZIP", "LZO", "BROTLI", "LZ4", "ZSTD", "LZ4_RAW"}

func (c Codec) String() string {
	if c >= 0 && int(c) < len(codecNames) {
		return codecNames[c]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(c))
}

type Encoding int32

const (
	Plain                Encoding = 0
	PlainDictionary      Encoding = 2
	RLE                  Encoding = 3
	BitPacked            Encoding = 4
	DeltaBinaryPacked    Encoding = 5
	DeltaLengthByteArray Encoding = 6
	DeltaByteArray       Encoding = 7
	RLEDictionary        Encoding = 8
	ByteStreamSplit      Encoding = 9
)

type PageType int32

const (
	DataPage       PageType = 0
	IndexPage      PageType = 1
	DictionaryPage PageType = 2
	DataPageV2     PageType = 3
)

var pageTypeNames = [...]string{"DATA_PAGE", "INDEX_PAGE", "DICTIONARY_PAGE", "DATA_PAGE_V2"}

func (t PageType) String() string {
	if t >= 0 && int(t) < len(pageTypeNames) {
		return pageTypeNames[t]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(t))
}

type PageHeader struct {
	Type                 PageType
	UncompressedPageSize int32
	CompressedPageSize   int32
	CRC                  *int32
	DataPageHeader       *DataPageHeader
	DictionaryPageHeader *DictionaryPageHeader
	DataPageHeaderV2     *DataPageHeaderV2
}

type DataPageHeader struct {
	NumValues               int32
	Encoding                Encoding
	DefinitionLevelEncoding Encoding
	RepetitionLevelEncoding Encoding
}

type DictionaryPageHeader struct {
	NumValues int32
	Encoding  Encoding
}

type DataPageHeaderV2 struct {
	NumValues                  int32
	NumNulls                   int32
	NumRows                    int32
	Encoding                   Encoding
	DefinitionLevelsByteLength int32
	RepetitionLevelsByteLength int32
	// Absent means compressed.
	IsCompressed *bool
}

// Compressed reports whether the values section of the page is compressed.
func (h *DataPageHeaderV2) Compressed() bool {
	return h.IsCompressed == nil || *h.IsCompressed
}
