package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCourseID(t *testing.T) {
	key, err := ParseCourseID("CAS-CS-320")
	require.NoError(t, err)
	assert.Equal(t, Key{School: "CAS", Dept: "CS", Number: 320}, key)

	_, err = ParseCourseID("malformed")
	assert.Error(t, err)

	_, err = ParseCourseID("CAS-CS-notanumber")
	assert.Error(t, err)
}
