//go:build windows

package sysinfo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMetrics(t *testing.T) {
	metrics := map[int]int{smCXScreen: 2560, smCYScreen: 1600}
	w, h, err := readMetrics(func(index int) (int, error) {
		return metrics[index], nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2560, w)
	assert.Equal(t, 1600, h)

	metrics[smCYScreen] = 0
	_, _, err = readMetrics(func(index int) (int, error) {
		return metrics[index], nil
	})
	assert.Error(t, err)

	failed := errors.New("access denied")
	_, _, err = readMetrics(func(index int) (int, error) {
		return 0, failed
	})
	assert.ErrorIs(t, err, failed)
}
