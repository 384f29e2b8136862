package source

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLines(t *testing.T) {
	m := NewMap()
	f := m.AddFile("a.ts", []byte("type A = number;\r\ntype B = A;\n"))
	assert.Equal(t, 3, f.LineCount())

	line, ok := f.Line(1)
	require.True(t, ok)
	assert.Equal(t, "type A = number;", line)
	line, ok = f.Line(2)
	require.True(t, ok)
	assert.Equal(t, "type B = A;", line)
	line, ok = f.Line(3)
	require.True(t, ok)
	assert.Equal(t, "", line)
	_, ok = f.Line(4)
	assert.False(t, ok)
}

func TestMapConcurrentAdds(t *testing.T) {
	m := NewMap()
	var wg sync.WaitGroup
	for _, p := range []string{"c.ts", "a.ts", "b.ts"} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			m.AddFile(p, []byte(p))
		}(p)
	}
	wg.Wait()
	assert.Equal(t, []string{"a.ts", "b.ts", "c.ts"}, m.Paths())
	f, ok := m.File("b.ts")
	require.True(t, ok)
	assert.Equal(t, "b.ts", string(f.Content))

	var nilMap *Map
	_, ok = nilMap.File("x")
	assert.False(t, ok)
}
