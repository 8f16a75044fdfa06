package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New("ABCA")
	require.Error(t, err)

	_, err = New("")
	require.Error(t, err)
}

func TestSuiteSizes(t *testing.T) {
	assert.Equal(t, 26, Alpha26.Size())
	assert.Equal(t, 38, Alpha38.Size())
	assert.Equal(t, 60, Alpha60.Size())

	i, ok := Alpha60.Index('€')
	require.True(t, ok)
	assert.Equal(t, '€', Alpha60.Symbol(i))
}

func TestLookupSuite(t *testing.T) {
	s, err := LookupSuite("inop-38")
	require.NoError(t, err)
	assert.Equal(t, SuiteINOP38, s.Name)
	assert.Equal(t, 5, s.Rotors)

	_, err = LookupSuite("enigma-m4")
	require.Error(t, err)

	assert.Equal(t, []string{SuiteLegacy, SuiteINOP38, SuiteINOP60}, SuiteNames())
}

func TestIsPermutation(t *testing.T) {
	assert.True(t, Alpha26.IsPermutation("EKMFLGDQVZNTOWYHXUSPAIBRCJ"))
	assert.False(t, Alpha26.IsPermutation("EKMFLGDQVZNTOWYHXUSPAIBRCC"))
	assert.False(t, Alpha26.IsPermutation("ABC"))
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		alpha *Alphabet
		want  string
	}{
		{name: "legacy drops spaces and punctuation", in: "Hello, World 42", alpha: Alpha26, want: "HELLOWORLD"},
		{name: "38 keeps spaces as hash", in: "attack at 0600", alpha: Alpha38, want: "ATTACK#AT#0600"},
		{name: "60 keeps symbols", in: "cost: £5 + €3?", alpha: Alpha60, want: "COST#£5#+#€3?"},
		{name: "empty", in: "", alpha: Alpha26, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preprocess(tt.in, tt.alpha))
		})
	}
}

func TestRestore(t *testing.T) {
	assert.Equal(t, "ATTACK AT DAWN", Restore("ATTACK#AT#DAWN"))
}
