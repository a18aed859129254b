// Package s3store is an S3-resident archival StorageAccess
// implementation (SPEC_FULL.md B: "aws-sdk-go-v2 ... used only for
// FullScan (no secondary indexes: an object store has no order)"). Every
// index-based method (FetchSubset, IndexEntryQuery,
// FetchFromIndexEntryQuery, StorageDelegate) returns an error or a zero
// value, which is the correct shape: the analyzer only ever builds a
// FullScan over a type whose StorageAccess has no usable indexes.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/corestash/queryplan/exec"
	"github.com/corestash/queryplan/model"
)

// Codec decodes one S3 object body into a record of type S.
type Codec[S any] interface {
	Decode(body []byte, key string) (S, error)
}

// Store lists and fetches every object under prefix in bucket, decoding
// each with codec. It advertises zero indexes, so the analyzer always
// plans it as a FullScan.
type Store[S any] struct {
	client   *s3.Client
	bucket   string
	prefix   string
	typeInfo model.TypeInfo
	codec    Codec[S]
}

// New builds a Store over bucket/prefix.
func New[S any](client *s3.Client, bucket, prefix string, typeInfo model.TypeInfo, codec Codec[S]) *Store[S] {
	return &Store[S]{client: client, bucket: bucket, prefix: prefix, typeInfo: typeInfo, codec: codec}
}

func (s *Store[S]) StorableType() model.TypeInfo        { return s.typeInfo }
func (s *Store[S]) AllIndexes() []model.IndexDescriptor { return nil }
func (s *Store[S]) StorageDelegate(model.IndexDescriptor) (exec.Node[S], bool) { return nil, false }

// CountAll is unknown: S3 has no cheap way to count objects under a
// prefix without listing them all.
func (s *Store[S]) CountAll() int64 { return -1 }

func (s *Store[S]) FetchAll() (exec.Cursor[S], error) {
	return &s3Cursor[S]{ctx: context.Background(), client: s.client, bucket: s.bucket, prefix: s.prefix, codec: s.codec}, nil
}

func (s *Store[S]) FetchSubset(index model.IndexDescriptor, _ []any, _ exec.Boundary, _ any, _ exec.Boundary, _ any, _, _ bool) (exec.Cursor[S], error) {
	return nil, fmt.Errorf("s3store: no indexes available, FetchSubset(%s) unsupported", index.Name)
}

func (s *Store[S]) IndexEntryQuery(model.IndexDescriptor) (exec.IndexEntryQuery, bool) {
	return nil, false
}

func (s *Store[S]) FetchFromIndexEntryQuery(index model.IndexDescriptor, _ exec.BoundQuery) (exec.Cursor[S], error) {
	return nil, fmt.Errorf("s3store: no index-entry query support for %s", index.Name)
}

// CreateSortBuffer buffers in memory; an archival scan without indexes is
// the worst-case input to Sorted, but still correct.
func (s *Store[S]) CreateSortBuffer() exec.SortBuffer[S] { return &memSortBuffer[S]{} }

// RenderNative renders the bucket/prefix ListObjectsV2 will scan. index
// and bound are ignored: an object store has no index to bind against,
// only the one prefix every FullScan iterates. Satisfies
// exec.NativeRenderer.
func (s *Store[S]) RenderNative(model.IndexDescriptor, exec.IndexBound, bool) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}

// s3Cursor pages through ListObjectsV2, fetching and decoding one object
// at a time.
type s3Cursor[S any] struct {
	ctx    context.Context
	client *s3.Client
	bucket string
	prefix string
	codec  Codec[S]

	keys       []string
	pos        int
	token      *string
	exhausted  bool
	listedOnce bool
}

func (c *s3Cursor[S]) fill() error {
	for c.pos >= len(c.keys) && !c.exhausted {
		out, err := c.client.ListObjectsV2(c.ctx, &s3.ListObjectsV2Input{
			Bucket:            &c.bucket,
			Prefix:            &c.prefix,
			ContinuationToken: c.token,
		})
		if err != nil {
			return fmt.Errorf("s3store: list %s/%s: %w", c.bucket, c.prefix, err)
		}
		c.keys = c.keys[:0]
		c.pos = 0
		for _, obj := range out.Contents {
			if obj.Key != nil {
				c.keys = append(c.keys, *obj.Key)
			}
		}
		c.listedOnce = true
		if out.IsTruncated != nil && *out.IsTruncated {
			c.token = out.NextContinuationToken
		} else {
			c.exhausted = true
		}
		if len(c.keys) > 0 {
			break
		}
	}
	return nil
}

func (c *s3Cursor[S]) Next() (S, bool, error) {
	var zero S
	if err := c.fill(); err != nil {
		return zero, false, err
	}
	if c.pos >= len(c.keys) {
		return zero, false, nil
	}
	key := c.keys[c.pos]
	c.pos++

	out, err := c.client.GetObject(c.ctx, &s3.GetObjectInput{Bucket: &c.bucket, Key: &key})
	if err != nil {
		return zero, false, fmt.Errorf("s3store: get %s/%s: %w", c.bucket, key, err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, out.Body); err != nil {
		return zero, false, fmt.Errorf("s3store: read %s/%s: %w", c.bucket, key, err)
	}

	rec, err := c.codec.Decode(buf.Bytes(), key)
	if err != nil {
		return zero, false, fmt.Errorf("s3store: decode %s/%s: %w", c.bucket, key, err)
	}
	return rec, true, nil
}

func (c *s3Cursor[S]) Close() error { return nil }

type memSortBuffer[S any] struct {
	items []S
}

func (b *memSortBuffer[S]) Add(s S) { b.items = append(b.items, s) }

func (b *memSortBuffer[S]) Sorted(less func(a, b S) bool) exec.Cursor[S] {
	items := make([]S, len(b.items))
	copy(items, b.items)
	insertionSort(items, less)
	return &sliceCursor[S]{items: items}
}

func (b *memSortBuffer[S]) Close() error { b.items = nil; return nil }

// insertionSort is used instead of sort.Slice to avoid depending on
// reflection for a buffer that, for an archival object store, is
// expected to hold modest result sets.
func insertionSort[S any](items []S, less func(a, b S) bool) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

type sliceCursor[S any] struct {
	items []S
	pos   int
}

func (c *sliceCursor[S]) Next() (S, bool, error) {
	var zero S
	if c.pos >= len(c.items) {
		return zero, false, nil
	}
	rec := c.items[c.pos]
	c.pos++
	return rec, true, nil
}

func (c *sliceCursor[S]) Close() error { return nil }
