package demangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitutionTable(t *testing.T) {
	var table substitutionTable

	a := &Identifier{Name: "A"}
	b := &Pointer{Inner: a}
	assert.Equal(t, 0, table.record(a))
	assert.Equal(t, 1, table.record(b))
	assert.Equal(t, 2, table.Len())

	got, err := table.resolve(0)
	require.NoError(t, err)
	assert.Same(t, a, got)

	got, err = table.resolve(1)
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = table.resolve(2)
	assert.ErrorIs(t, err, ErrInvalidSubstitution)

	_, err = table.resolve(-1)
	assert.ErrorIs(t, err, ErrInvalidSubstitution)
}

func TestStdAbbreviations(t *testing.T) {
	var table substitutionTable

	tests := map[byte]string{
		't': "::std",
		'a': "::std::allocator",
		'b': "::std::basic_string",
		's': "::std::basic_string<char,::std::char_traits<char>,::std::allocator<char> >",
		'i': "::std::basic_istream<char,::std::char_traits<char> >",
		'o': "::std::basic_ostream<char,::std::char_traits<char> >",
		'd': "::std::basic_iostream<char,::std::char_traits<char> >",
	}
	for code, expected := range tests {
		n, err := table.resolveStd(code)
		require.NoError(t, err)
		assert.Equal(t, expected, n.String())
	}
	assert.Zero(t, table.Len())

	_, err := table.resolveStd('x')
	assert.ErrorIs(t, err, ErrUnknownCode)
}

func TestSubstitutionErrorLocated(t *testing.T) {
	_, err := Unmangle("_Z1fN1A1BES1_")
	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "_Z1fN1A1BES1_", de.Input)
	assert.Equal(t, len("_Z1fN1A1BES"), de.Offset)
}
