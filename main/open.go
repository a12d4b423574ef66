package main

import (
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"

	"parquet_schema/footer"
	"parquet_schema/schema"
)

const (
	decoderCompact   = "compact"
	decoderParquetGo = "parquet-go"
)

// schemaFile is an open parquet file with its footer decoded and its schema
// resolved.
type schemaFile struct {
	f    *os.File
	meta *footer.FileMetaData
	desc *schema.Descriptor
}

func (a *app) open(path string) (*schemaFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	sf, err := a.resolve(f)
	if err != nil {
		f.Close()
		return nil, errors.WithMessage(err, path)
	}
	return sf, nil
}

func (a *app) resolve(f *os.File) (*schemaFile, error) {
	decoder := a.v.GetString("decoder")

	var meta *footer.FileMetaData
	switch decoder {
	case decoderCompact:
		var err error
		if meta, err = footer.Open(f); err != nil {
			return nil, err
		}
	case decoderParquetGo:
		stat, err := f.Stat()
		if err != nil {
			return nil, err
		}
		pf, err := parquet.OpenFile(f, stat.Size())
		if err != nil {
			return nil, errors.Wrap(err, "opening parquet file")
		}
		meta = footer.FromFormat(pf.Metadata())
	default:
		return nil, errors.Errorf("unknown decoder: %q (expected %s, %s)", decoder, decoderCompact, decoderParquetGo)
	}

	desc, err := schema.FromThrift(meta.Schema, a.v.GetBool("case_sensitive"))
	if err != nil {
		return nil, errors.WithMessage(err, "resolving schema")
	}
	if err := meta.CheckColumns(desc.NumColumns()); err != nil {
		return nil, err
	}

	slog.Debug("resolved schema",
		"decoder", decoder,
		"created_by", meta.CreatedBy,
		"rows", meta.NumRows,
		"row_groups", len(meta.RowGroups),
		"columns", desc.NumColumns())
	return &schemaFile{f: f, meta: meta, desc: desc}, nil
}

func (sf *schemaFile) Close() error {
	return sf.f.Close()
}
