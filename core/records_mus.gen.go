// Code generated by musgen-go. DO NOT EDIT.

package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	mapuuNZnhbO1Ie6QN4JBJΣrewΞΞ   = ord.NewMapSer[string, string](ord.String, ord.String)
	slice5qzeIQhcJXweB5A005T3ΣQΞΞ = ord.NewSliceSer[float32](varint.Float32)
)

var FileIDMUS = fileIDMUS{}

type fileIDMUS struct{}

func (s fileIDMUS) Marshal(v FileID, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s fileIDMUS) Unmarshal(bs []byte) (v FileID, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = FileID(tmp)
	return
}

func (s fileIDMUS) Size(v FileID) (size int) {
	return ord.String.Size(string(v))
}

func (s fileIDMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var ChunkIDMUS = chunkIDMUS{}

type chunkIDMUS struct{}

func (s chunkIDMUS) Marshal(v ChunkID, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s chunkIDMUS) Unmarshal(bs []byte) (v ChunkID, n int, err error) {
	tmp, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ChunkID(tmp)
	return
}

func (s chunkIDMUS) Size(v ChunkID) (size int) {
	return ord.String.Size(string(v))
}

func (s chunkIDMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

var ErrorKindMUS = errorKindMUS{}

type errorKindMUS struct{}

func (s errorKindMUS) Marshal(v ErrorKind, bs []byte) (n int) {
	return varint.Int.Marshal(int(v), bs)
}

func (s errorKindMUS) Unmarshal(bs []byte) (v ErrorKind, n int, err error) {
	tmp, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ErrorKind(tmp)
	return
}

func (s errorKindMUS) Size(v ErrorKind) (size int) {
	return varint.Int.Size(int(v))
}

func (s errorKindMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int.Skip(bs)
}

var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = FileIDMUS.Marshal(v.FileID, bs)
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += ord.String.Marshal(v.FilePath, bs[n:])
	n += ord.String.Marshal(v.Extension, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Author, bs[n:])
	n += ord.String.Marshal(v.Language, bs[n:])
	n += ord.String.Marshal(v.Category, bs[n:])
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += raw.TimeUnixMicro.Marshal(v.IngestedAt, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.UpdatedAt, bs[n:])
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	v.FileID, n, err = FileIDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FilePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Extension, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Author, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Language, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IngestedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = FileIDMUS.Size(v.FileID)
	size += ord.String.Size(v.Filename)
	size += ord.String.Size(v.FilePath)
	size += ord.String.Size(v.Extension)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Author)
	size += ord.String.Size(v.Language)
	size += ord.String.Size(v.Category)
	size += varint.Int.Size(v.ChunkCount)
	size += raw.TimeUnixMicro.Size(v.IngestedAt)
	return size + raw.TimeUnixMicro.Size(v.UpdatedAt)
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	n, err = FileIDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}

var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = ChunkIDMUS.Marshal(v.ID, bs)
	n += FileIDMUS.Marshal(v.DocID, bs[n:])
	n += varint.Int.Marshal(v.Ordinal, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += slice5qzeIQhcJXweB5A005T3ΣQΞΞ.Marshal(v.Vector, bs[n:])
	return n + mapuuNZnhbO1Ie6QN4JBJΣrewΞΞ.Marshal(v.Metadata, bs[n:])
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	v.ID, n, err = ChunkIDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.DocID, n1, err = FileIDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Ordinal, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = slice5qzeIQhcJXweB5A005T3ΣQΞΞ.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = mapuuNZnhbO1Ie6QN4JBJΣrewΞΞ.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = ChunkIDMUS.Size(v.ID)
	size += FileIDMUS.Size(v.DocID)
	size += varint.Int.Size(v.Ordinal)
	size += ord.String.Size(v.Content)
	size += slice5qzeIQhcJXweB5A005T3ΣQΞΞ.Size(v.Vector)
	return size + mapuuNZnhbO1Ie6QN4JBJΣrewΞΞ.Size(v.Metadata)
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	n, err = ChunkIDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = FileIDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = slice5qzeIQhcJXweB5A005T3ΣQΞΞ.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = mapuuNZnhbO1Ie6QN4JBJΣrewΞΞ.Skip(bs[n:])
	n += n1
	return
}

var IngestionErrorMUS = ingestionErrorMUS{}

type ingestionErrorMUS struct{}

func (s ingestionErrorMUS) Marshal(v IngestionError, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += FileIDMUS.Marshal(v.DocID, bs[n:])
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += ErrorKindMUS.Marshal(v.Kind, bs[n:])
	n += ord.String.Marshal(v.Message, bs[n:])
	return n + raw.TimeUnixMicro.Marshal(v.Timestamp, bs[n:])
}

func (s ingestionErrorMUS) Unmarshal(bs []byte) (v IngestionError, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.DocID, n1, err = FileIDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Kind, n1, err = ErrorKindMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Message, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:])
	n += n1
	return
}

func (s ingestionErrorMUS) Size(v IngestionError) (size int) {
	size = ord.String.Size(v.ID)
	size += FileIDMUS.Size(v.DocID)
	size += ord.String.Size(v.Filename)
	size += ErrorKindMUS.Size(v.Kind)
	size += ord.String.Size(v.Message)
	return size + raw.TimeUnixMicro.Size(v.Timestamp)
}

func (s ingestionErrorMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = FileIDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ErrorKindMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicro.Skip(bs[n:])
	n += n1
	return
}
