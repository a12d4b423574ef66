package footer

import (
	"github.com/pkg/errors"

	"parquet_schema/schema"
)

func thriftInt(f compactField, bits int) (int64, error) {
	switch f.Val.Type {
	case compactByte, compactI16, compactI32, compactI64:
	default:
		return 0, errors.Wrapf(ErrCorrupt, "field %d: expected integer, got thrift type %d", f.ID, f.Val.Type)
	}
	v := f.Val.Int
	if bits < 64 && (v < -(1<<(bits-1)) || v >= 1<<(bits-1)) {
		return 0, errors.Wrapf(ErrCorrupt, "field %d: value %d overflows i%d", f.ID, v, bits)
	}
	return v, nil
}

func thriftI32(f compactField) (int32, error) {
	v, err := thriftInt(f, 32)
	return int32(v), err
}

func thriftI64(f compactField) (int64, error) {
	return thriftInt(f, 64)
}

func thriftBool(f compactField) (bool, error) {
	if f.Val.Type != compactBooleanTrue && f.Val.Type != compactBooleanFalse {
		return false, errors.Wrapf(ErrCorrupt, "field %d: expected bool, got thrift type %d", f.ID, f.Val.Type)
	}
	return f.Val.Bool, nil
}

func thriftString(f compactField) (string, error) {
	if f.Val.Type != compactBinary {
		return "", errors.Wrapf(ErrCorrupt, "field %d: expected binary, got thrift type %d", f.ID, f.Val.Type)
	}
	return string(f.Val.Binary), nil
}

func thriftStruct(f compactField) (*compactStructValue, error) {
	if f.Val.Type != compactStruct || f.Val.Struct == nil {
		return nil, errors.Wrapf(ErrCorrupt, "field %d: expected struct, got thrift type %d", f.ID, f.Val.Type)
	}
	return f.Val.Struct, nil
}

func thriftList(f compactField) ([]compactValue, error) {
	if f.Val.Type != compactList && f.Val.Type != compactSet {
		return nil, errors.Wrapf(ErrCorrupt, "field %d: expected list, got thrift type %d", f.ID, f.Val.Type)
	}
	return f.Val.List, nil
}

// thriftStructs decodes a list<struct> field with decode.
func thriftStructs[T any](f compactField, decode func(*compactStructValue) (T, error)) ([]T, error) {
	lst, err := thriftList(f)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(lst))
	for i, elem := range lst {
		elemField := compactField{ID: f.ID, Val: elem}
		st, err := thriftStruct(elemField)
		if err != nil {
			return nil, err
		}
		v, err := decode(st)
		if err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

func ptrTo[T any](v T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// decodeFileMetaData converts the parsed FileMetaData struct.
func decodeFileMetaData(st *compactStructValue) (*FileMetaData, error) {
	meta := &FileMetaData{}
	for _, f := range st.Fields {
		var err error
		switch f.ID {
		case 1: // version: i32
			meta.Version, err = thriftI32(f)
		case 2: // schema: list<SchemaElement>
			meta.Schema, err = thriftStructs(f, decodeSchemaElement)
			err = errors.WithMessage(err, "schema")
		case 3: // num_rows: i64
			meta.NumRows, err = thriftI64(f)
		case 4: // row_groups: list<RowGroup>
			meta.RowGroups, err = thriftStructs(f, decodeRowGroup)
			err = errors.WithMessage(err, "row_groups")
		case 5: // key_value_metadata: list<KeyValue>
			meta.KeyValueMetadata, err = thriftStructs(f, decodeKeyValue)
		case 6: // created_by: string
			meta.CreatedBy, err = thriftString(f)
		}
		if err != nil {
			return nil, err
		}
	}
	return meta, nil
}

func decodeSchemaElement(st *compactStructValue) (schema.Element, error) {
	var out schema.Element
	for _, f := range st.Fields {
		var err error
		switch f.ID {
		case 1: // type (enum): i32
			var v int32
			if v, err = thriftI32(f); err == nil {
				t := schema.PhysicalType(v)
				out.Type = &t
			}
		case 2: // type_length: i32
			out.TypeLength, err = ptrTo(thriftI32(f))
		case 3: // repetition_type (enum): i32
			var v int32
			if v, err = thriftI32(f); err == nil {
				r := schema.Repetition(v)
				out.RepetitionType = &r
			}
		case 4: // name: string
			out.Name, err = thriftString(f)
		case 5: // num_children: i32
			out.NumChildren, err = ptrTo(thriftI32(f))
		case 6: // converted_type (enum): i32
			var v int32
			if v, err = thriftI32(f); err == nil {
				c := schema.ConvertedType(v)
				out.ConvertedType = &c
			}
		case 7: // scale: i32
			out.Scale, err = ptrTo(thriftI32(f))
		case 8: // precision: i32
			out.Precision, err = ptrTo(thriftI32(f))
		case 9: // field_id: i32
			out.FieldID, err = ptrTo(thriftI32(f))
		case 10: // logicalType: LogicalType
			var lt *compactStructValue
			if lt, err = thriftStruct(f); err == nil {
				out.LogicalType, err = decodeLogicalType(lt)
			}
		}
		if err != nil {
			return schema.Element{}, errors.WithMessagef(err, "schema element %q", out.Name)
		}
	}
	return out, nil
}

// decodeLogicalType decodes the LogicalType union. Unknown members leave
// Kind at LogicalNone so the converted type still applies.
func decodeLogicalType(st *compactStructValue) (*schema.LogicalType, error) {
	out := &schema.LogicalType{}
	for _, f := range st.Fields {
		var err error
		switch f.ID {
		case 1:
			out.Kind = schema.LogicalString
		case 2:
			out.Kind = schema.LogicalMap
		case 3:
			out.Kind = schema.LogicalList
		case 4:
			out.Kind = schema.LogicalEnum
		case 5: // DecimalType{1: scale, 2: precision}
			out.Kind = schema.LogicalDecimal
			err = forEachField(f, func(df compactField) (err error) {
				switch df.ID {
				case 1:
					out.Scale, err = thriftI32(df)
				case 2:
					out.Precision, err = thriftI32(df)
				}
				return err
			})
		case 6:
			out.Kind = schema.LogicalDate
		case 7, 8: // TimeType, TimestampType{1: isAdjustedToUTC, 2: unit}
			out.Kind = schema.LogicalTime
			if f.ID == 8 {
				out.Kind = schema.LogicalTimestamp
			}
			err = forEachField(f, func(tf compactField) (err error) {
				switch tf.ID {
				case 1:
					out.IsAdjustedToUTC, err = thriftBool(tf)
				case 2:
					err = forEachField(tf, func(uf compactField) error {
						out.Unit = schema.TimeUnit(uf.ID)
						return nil
					})
				}
				return err
			})
		case 10: // IntType{1: bitWidth, 2: isSigned}
			out.Kind = schema.LogicalInteger
			err = forEachField(f, func(inf compactField) (err error) {
				switch inf.ID {
				case 1:
					var w int64
					w, err = thriftInt(inf, 8)
					out.BitWidth = int8(w)
				case 2:
					out.IsSigned, err = thriftBool(inf)
				}
				return err
			})
		case 11:
			out.Kind = schema.LogicalUnknown
		case 12:
			out.Kind = schema.LogicalJSON
		case 13:
			out.Kind = schema.LogicalBSON
		case 14:
			out.Kind = schema.LogicalUUID
		case 15:
			out.Kind = schema.LogicalFloat16
		}
		if err != nil {
			return nil, errors.WithMessage(err, "logicalType")
		}
	}
	return out, nil
}

func forEachField(f compactField, do func(compactField) error) error {
	st, err := thriftStruct(f)
	if err != nil {
		return err
	}
	for _, sf := range st.Fields {
		if err := do(sf); err != nil {
			return err
		}
	}
	return nil
}

func decodeRowGroup(st *compactStructValue) (RowGroup, error) {
	var out RowGroup
	for _, f := range st.Fields {
		var err error
		switch f.ID {
		case 1: // columns: list<ColumnChunk>
			out.Columns, err = thriftStructs(f, decodeColumnChunk)
		case 2: // total_byte_size: i64
			out.TotalByteSize, err = thriftI64(f)
		case 3: // num_rows: i64
			out.NumRows, err = thriftI64(f)
		case 5: // file_offset: i64
			out.FileOffset, err = thriftI64(f)
		case 6: // total_compressed_size: i64
			out.TotalCompressedSize, err = thriftI64(f)
		case 7: // ordinal: i16
			var v int64
			v, err = thriftInt(f, 16)
			out.Ordinal = int32(v)
		}
		if err != nil {
			return RowGroup{}, err
		}
	}
	return out, nil
}

func decodeColumnChunk(st *compactStructValue) (ColumnChunk, error) {
	var out ColumnChunk
	for _, f := range st.Fields {
		var err error
		switch f.ID {
		case 1: // file_path: string
			out.FilePath, err = thriftString(f)
		case 2: // file_offset: i64
			out.FileOffset, err = thriftI64(f)
		case 3: // meta_data: ColumnMetaData
			var sst *compactStructValue
			if sst, err = thriftStruct(f); err == nil {
				out.MetaData, err = decodeColumnMetaData(sst)
			}
		}
		if err != nil {
			return ColumnChunk{}, err
		}
	}
	return out, nil
}

func decodeColumnMetaData(st *compactStructValue) (*ColumnMetaData, error) {
	out := &ColumnMetaData{}
	for _, f := range st.Fields {
		var err error
		switch f.ID {
		case 1: // type (enum): i32
			var v int32
			v, err = thriftI32(f)
			out.Type = schema.PhysicalType(v)
		case 2: // encodings: list<Encoding>
			var lst []compactValue
			if lst, err = thriftList(f); err == nil {
				for _, elem := range lst {
					var v int32
					if v, err = thriftI32(compactField{ID: f.ID, Val: elem}); err != nil {
						break
					}
					out.Encodings = append(out.Encodings, Encoding(v))
				}
			}
		case 3: // path_in_schema: list<string>
			var lst []compactValue
			if lst, err = thriftList(f); err == nil {
				for _, elem := range lst {
					var s string
					if s, err = thriftString(compactField{ID: f.ID, Val: elem}); err != nil {
						break
					}
					out.PathInSchema = append(out.PathInSchema, s)
				}
			}
		case 4: // codec (enum): i32
			var v int32
			v, err = thriftI32(f)
			out.Codec = Codec(v)
		case 5: // num_values: i64
			out.NumValues, err = thriftI64(f)
		case 6: // total_uncompressed_size: i64
			out.TotalUncompressedSize, err = thriftI64(f)
		case 7: // total_compressed_size: i64
			out.TotalCompressedSize, err = thriftI64(f)
		case 8: // key_value_metadata: list<KeyValue>
			out.KeyValueMetadata, err = thriftStructs(f, decodeKeyValue)
		case 9: // data_page_offset: i64
			out.DataPageOffset, err = thriftI64(f)
		case 10: // index_page_offset: i64
			out.IndexPageOffset, err = ptrTo(thriftI64(f))
		case 11: // dictionary_page_offset: i64
			out.DictionaryPageOffset, err = ptrTo(thriftI64(f))
		}
		if err != nil {
			return nil, errors.WithMessage(err, "column metadata")
		}
	}
	return out, nil
}

func decodeKeyValue(st *compactStructValue) (KeyValue, error) {
	var out KeyValue
	for _, f := range st.Fields {
		var err error
		switch f.ID {
		case 1:
			out.Key, err = thriftString(f)
		case 2:
			out.Value, err = ptrTo(thriftString(f))
		}
		if err != nil {
			return KeyValue{}, err
		}
	}
	return out, nil
}

func decodePageHeader(st *compactStructValue) (*PageHeader, error) {
	out := &PageHeader{}
	for _, f := range st.Fields {
		var err error
		switch f.ID {
		case 1: // type: i32
			var v int32
			v, err = thriftI32(f)
			out.Type = PageType(v)
		case 2: // uncompressed_page_size: i32
			out.UncompressedPageSize, err = thriftI32(f)
		case 3: // compressed_page_size: i32
			out.CompressedPageSize, err = thriftI32(f)
		case 4: // crc: i32
			out.CRC, err = ptrTo(thriftI32(f))
		case 5: // data_page_header
			h := &DataPageHeader{}
			out.DataPageHeader = h
			err = forEachField(f, func(df compactField) (err error) {
				var v int32
				switch df.ID {
				case 1:
					h.NumValues, err = thriftI32(df)
				case 2:
					v, err = thriftI32(df)
					h.Encoding = Encoding(v)
				case 3:
					v, err = thriftI32(df)
					h.DefinitionLevelEncoding = Encoding(v)
				case 4:
					v, err = thriftI32(df)
					h.RepetitionLevelEncoding = Encoding(v)
				}
				return err
			})
		case 7: // dictionary_page_header
			h := &DictionaryPageHeader{}
			out.DictionaryPageHeader = h
			err = forEachField(f, func(df compactField) (err error) {
				switch df.ID {
				case 1:
					h.NumValues, err = thriftI32(df)
				case 2:
					var v int32
					v, err = thriftI32(df)
					h.Encoding = Encoding(v)
				}
				return err
			})
		case 8: // data_page_header_v2
			h := &DataPageHeaderV2{}
			out.DataPageHeaderV2 = h
			err = forEachField(f, func(df compactField) (err error) {
				switch df.ID {
				case 1:
					h.NumValues, err = thriftI32(df)
				case 2:
					h.NumNulls, err = thriftI32(df)
				case 3:
					h.NumRows, err = thriftI32(df)
				case 4:
					var v int32
					v, err = thriftI32(df)
					h.Encoding = Encoding(v)
				case 5:
					h.DefinitionLevelsByteLength, err = thriftI32(df)
				case 6:
					h.RepetitionLevelsByteLength, err = thriftI32(df)
				case 7:
					h.IsCompressed, err = ptrTo(thriftBool(df))
				}
				return err
			})
		}
		if err != nil {
			return nil, errors.WithMessage(err, "page header")
		}
	}
	return out, nil
}
