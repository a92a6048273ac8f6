package core

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// maxVectorLen bounds decoded vector lengths to reject corrupt input.
const maxVectorLen = 1 << 16

var (
	IDMUS        = idMUS{}
	PersonMUS    = personMUS{}
	CompanyMUS   = companyMUS{}
	EmbeddingMUS = embeddingMUS{}
	ManifestMUS  = manifestMUS{}
)

var (
	_ mus.Serializer[ID]        = IDMUS
	_ mus.Serializer[Person]    = PersonMUS
	_ mus.Serializer[Company]   = CompanyMUS
	_ mus.Serializer[Embedding] = EmbeddingMUS
	_ mus.Serializer[Manifest]  = ManifestMUS
)

// timeMicroMUS stores timestamps as varint Unix microseconds in UTC.
type timeMicroMUS struct{}

func (timeMicroMUS) Marshal(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeMicroMUS) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	t = time.UnixMicro(v).UTC()
	return
}

func (timeMicroMUS) Size(t time.Time) (size int) {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeMicroMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

var timeMUS = timeMicroMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type personMUS struct{}

func (s personMUS) Marshal(v Person, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Email, bs[n:])
	n += ord.String.Marshal(v.LinkedInURL, bs[n:])
	n += ord.String.Marshal(v.Position, bs[n:])
	n += ord.String.Marshal(v.Company, bs[n:])
	n += timeMUS.Marshal(v.ConnectedOn, bs[n:])
	return n + timeMUS.Marshal(v.InsertedAt, bs[n:])
}

func (s personMUS) Unmarshal(bs []byte) (v Person, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for _, field := range []*string{&v.Name, &v.Email, &v.LinkedInURL, &v.Position, &v.Company} {
		*field, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.ConnectedOn, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s personMUS) Size(v Person) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Email)
	size += ord.String.Size(v.LinkedInURL)
	size += ord.String.Size(v.Position)
	size += ord.String.Size(v.Company)
	size += timeMUS.Size(v.ConnectedOn)
	return size + timeMUS.Size(v.InsertedAt)
}

func (s personMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	for range 5 {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	for range 2 {
		n1, err = timeMUS.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type companyMUS struct{}

func (s companyMUS) Marshal(v Company, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	return n + ord.String.Marshal(v.Key, bs[n:])
}

func (s companyMUS) Unmarshal(bs []byte) (v Company, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Key, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s companyMUS) Size(v Company) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	return size + ord.String.Size(v.Key)
}

func (s companyMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	for range 2 {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type embeddingMUS struct{}

func (s embeddingMUS) Marshal(v Embedding, bs []byte) (n int) {
	n = IDMUS.Marshal(v.PersonId, bs)
	n += varint.Uint64.Marshal(uint64(len(v.Vector)), bs[n:])
	for _, f := range v.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n + ord.String.Marshal(v.SourceText, bs[n:])
}

func (s embeddingMUS) Unmarshal(bs []byte) (v Embedding, n int, err error) {
	v.PersonId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	length, n1, err := varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > maxVectorLen {
		err = ErrInvalidLength
		return
	}
	v.Vector = make([]float32, length)
	for i := range v.Vector {
		v.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.SourceText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s embeddingMUS) Size(v Embedding) (size int) {
	size = IDMUS.Size(v.PersonId)
	size += varint.Uint64.Size(uint64(len(v.Vector)))
	for _, f := range v.Vector {
		size += raw.Float32.Size(f)
	}
	return size + ord.String.Size(v.SourceText)
}

func (s embeddingMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	length, n1, err := varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > maxVectorLen {
		err = ErrInvalidLength
		return
	}
	for range length {
		n1, err = raw.Float32.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

type manifestMUS struct{}

func (s manifestMUS) Marshal(v Manifest, bs []byte) (n int) {
	n = ord.String.Marshal(v.Source, bs)
	for _, c := range []int{v.Rows, v.People, v.Companies, v.Embeddings, v.Skipped} {
		n += varint.Int64.Marshal(int64(c), bs[n:])
	}
	n += ord.String.Marshal(v.Model, bs[n:])
	return n + timeMUS.Marshal(v.CompletedAt, bs[n:])
}

func (s manifestMUS) Unmarshal(bs []byte) (v Manifest, n int, err error) {
	v.Source, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		n1  int
		tmp int64
	)
	for _, field := range []*int{&v.Rows, &v.People, &v.Companies, &v.Embeddings, &v.Skipped} {
		tmp, n1, err = varint.Int64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		*field = int(tmp)
	}
	v.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CompletedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s manifestMUS) Size(v Manifest) (size int) {
	size = ord.String.Size(v.Source)
	for _, c := range []int{v.Rows, v.People, v.Companies, v.Embeddings, v.Skipped} {
		size += varint.Int64.Size(int64(c))
	}
	size += ord.String.Size(v.Model)
	return size + timeMUS.Size(v.CompletedAt)
}

func (s manifestMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	for range 5 {
		n1, err = varint.Int64.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMUS.Skip(bs[n:])
	n += n1
	return
}
