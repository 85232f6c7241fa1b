package gen

import (
	"testing"

	"rewardgate/pkg/config"

	"github.com/stretchr/testify/require"
)

func TestNewSnowflakeNode(t *testing.T) {
	node, err := NewSnowflakeNode(&config.Config{NodeID: 7})
	require.NoError(t, err)
	require.NotEqual(t, node.Generate(), node.Generate())

	_, err = NewSnowflakeNode(&config.Config{NodeID: 5000})
	require.Error(t, err)
}
