package peek

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/risor-io/risor/object"
)

// makeReadHeadFn creates the "read_head" host function.
//
// read_head(n) → string with at most the first n bytes of the asset
func makeReadHeadFn(path string) *object.Builtin {
	return object.NewBuiltin("read_head", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("read_head", 1, len(args))
		}
		n, ok := args[0].(*object.Int)
		if !ok {
			return object.Errorf("read_head: n must be an int, got %s", args[0].Type())
		}
		if n.Value() < 0 {
			return object.Errorf("read_head: n must be non-negative")
		}

		file, err := os.Open(path)
		if err != nil {
			return object.Errorf("read_head: %v", err)
		}
		defer file.Close()

		buf := make([]byte, n.Value())
		read, err := io.ReadFull(file, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return object.Errorf("read_head: %v", err)
		}
		return object.NewString(string(buf[:read]))
	})
}

// makeFileSizeFn creates the "file_size" host function.
//
// file_size() → int
func makeFileSizeFn(path string) *object.Builtin {
	return object.NewBuiltin("file_size", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("file_size", 0, len(args))
		}
		info, err := os.Stat(path)
		if err != nil {
			return object.Errorf("file_size: %v", err)
		}
		return object.NewInt(info.Size())
	})
}

// makeLineCountFn creates the "line_count" host function.
//
// line_count() → int
//
// Counts newline-terminated lines by streaming the file; a trailing
// partial line counts as one.
func makeLineCountFn(path string) *object.Builtin {
	return object.NewBuiltin("line_count", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("line_count", 0, len(args))
		}
		file, err := os.Open(path)
		if err != nil {
			return object.Errorf("line_count: %v", err)
		}
		defer file.Close()

		var count int64
		var lastByte byte
		buf := make([]byte, 64*1024)
		for {
			n, err := file.Read(buf)
			if n > 0 {
				count += int64(bytes.Count(buf[:n], []byte{'\n'}))
				lastByte = buf[n-1]
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return object.Errorf("line_count: %v", err)
			}
		}
		if lastByte != 0 && lastByte != '\n' {
			count++
		}
		return object.NewInt(count)
	})
}

// makeEmitFn creates the "emit" host function. Scripts call it once with
// a map; the map becomes the peek summary.
//
// emit(summary)
func makeEmitFn(result *map[string]any) *object.Builtin {
	return object.NewBuiltin("emit", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("emit", 1, len(args))
		}
		m, ok := args[0].(*object.Map)
		if !ok {
			return object.Errorf("emit: summary must be a map, got %s", args[0].Type())
		}
		converted, ok := m.Interface().(map[string]any)
		if !ok {
			return object.Errorf("emit: cannot convert summary map")
		}
		*result = converted
		return object.Nil
	})
}
