package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFanoutCloserReverseOrder(t *testing.T) {
	var order []string

	closer := &FanoutCloser{}
	closer.Add("first", FuncCloser(func() error {
		order = append(order, "first")
		return nil
	}))
	closer.Add("second", FuncCloser(func() error {
		order = append(order, "second")
		return nil
	}))

	require.Nil(t, closer.Close())
	require.Equal(t, []string{"second", "first"}, order)

	require.Nil(t, closer.Close())
	require.Equal(t, 2, len(order))
}

func TestFanoutCloserJoinErrors(t *testing.T) {
	errFirst := errors.New("first")
	errSecond := errors.New("second")

	closed := 0

	closer := &FanoutCloser{}
	closer.Add("first", FuncCloser(func() error {
		closed++
		return errFirst
	}))
	closer.Add("ok", FuncCloser(func() error {
		closed++
		return nil
	}))
	closer.Add("second", FuncCloser(func() error {
		closed++
		return errSecond
	}))

	err := closer.Close()
	require.NotNil(t, err)
	require.True(t, errors.Is(err, errFirst))
	require.True(t, errors.Is(err, errSecond))
	require.Equal(t, 3, closed)
}
