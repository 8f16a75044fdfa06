package wheels

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/machine"
)

func TestBuiltinTablesAreValid(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	assert.Equal(t, []string{"I", "II", "III", "IV", "V", "VI", "VII"}, c.Rotors(alphabet.SuiteLegacy))
	assert.Equal(t, []string{"A", "B", "C"}, c.Reflectors(alphabet.SuiteLegacy))
	assert.Equal(t, []string{"R1", "R2", "R3", "R4", "R5", "R6", "R7", "R8", "R9", "R10"}, c.Rotors(alphabet.SuiteINOP38))
	assert.Equal(t, []string{"D", "E", "F", "G", "H"}, c.Reflectors(alphabet.SuiteINOP38))
	assert.Len(t, c.Rotors(alphabet.SuiteINOP60), 20)
	assert.Equal(t, []string{"AI", "J", "K", "L", "M", "N", "O", "P", "Q", "R"}, c.Reflectors(alphabet.SuiteINOP60))
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	r, suite, err := Default().Rotor("iii")
	require.NoError(t, err)
	assert.Equal(t, alphabet.SuiteLegacy, suite)
	assert.Equal(t, "V", r.Notches())

	_, suite, err = Default().Reflector("ai")
	require.NoError(t, err)
	assert.Equal(t, alphabet.SuiteINOP60, suite)

	_, _, err = Default().Rotor("XI")
	require.Error(t, err)
	_, _, err = Default().Reflector("Z")
	require.Error(t, err)
}

func TestLookupReturnsIndependentCopies(t *testing.T) {
	a, _, err := Default().Rotor("I")
	require.NoError(t, err)
	b, _, err := Default().Rotor("I")
	require.NoError(t, err)

	a.Step()
	require.NoError(t, a.SetNotches("A"))

	assert.Equal(t, 0, b.Position())
	assert.Equal(t, "Q", b.Notches())

	def, ok := Default().RotorDef("I")
	require.True(t, ok)
	assert.Equal(t, "Q", def.Notches)
}

func TestRegisterValidation(t *testing.T) {
	c := NewCatalog()

	require.NoError(t, c.RegisterRotor(RotorDef{Name: "X1", Wiring: alphabet.Symbols26}))
	require.Error(t, c.RegisterRotor(RotorDef{Name: "x1", Wiring: alphabet.Symbols26}), "duplicate name")
	require.Error(t, c.RegisterRotor(RotorDef{Name: "", Wiring: alphabet.Symbols26}))
	require.Error(t, c.RegisterRotor(RotorDef{Name: "X2", Wiring: "ABC"}), "no suite has 3 symbols")

	err := c.RegisterRotor(RotorDef{Name: "X3", Wiring: "AACDEFGHIJKLMNOPQRSTUVWXYZ"})
	require.ErrorIs(t, err, machine.ErrInvalidWiring)

	err = c.RegisterReflector(ReflectorDef{Name: "Y1", Wiring: alphabet.Symbols26})
	require.ErrorIs(t, err, machine.ErrInvalidWiring, "identity has fixed points")

	c.Unregister("x1")
	_, _, err = c.Rotor("X1")
	require.Error(t, err)
}

func TestConcurrentLookups(t *testing.T) {
	c := Default()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r, _, err := c.Rotor("II")
				if err != nil {
					t.Error(err)
					return
				}
				r.Step()
			}
		}()
	}
	wg.Wait()

	r, _, err := c.Rotor("II")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Position())
}
