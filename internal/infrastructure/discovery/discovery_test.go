package discovery

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialtimer/backend/internal/infrastructure/config"
)

func TestBuildServiceInfo(t *testing.T) {
	cfg := config.NewConfig().Discovery
	info := BuildServiceInfo(cfg, 19970, "1.2.0")

	assert.Equal(t, "dialtimer", info.InstanceName)
	assert.Equal(t, "_dialtimer._tcp", info.ServiceType)
	assert.Equal(t, "local.", info.Domain)
	assert.Equal(t, 19970, info.Port)
	assert.Equal(t, []string{"api=/api/v1", "version=1.2.0", "ws=/ws/timer"}, info.records())
}

func TestIsValidLANAddress(t *testing.T) {
	tests := []struct {
		ip    string
		valid bool
	}{
		{"192.168.1.10", true},
		{"10.0.0.5", true},
		{"172.16.3.4", true},
		{"127.0.0.1", false},
		{"169.254.10.1", false},
		{"8.8.8.8", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.valid, isValidLANAddress(net.ParseIP(tt.ip)))
		})
	}
}

func TestIsVirtualInterface(t *testing.T) {
	assert.True(t, isVirtualInterface("docker0"))
	assert.True(t, isVirtualInterface("vboxnet1"))
	assert.True(t, isVirtualInterface("utun3"))
	assert.False(t, isVirtualInterface("en0"))
	assert.False(t, isVirtualInterface("eth0"))
}

func TestParsePort(t *testing.T) {
	port, err := ParsePort(":19970")
	require.NoError(t, err)
	assert.Equal(t, 19970, port)

	port, err = ParsePort("0.0.0.0:8080")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	_, err = ParsePort("19970")
	assert.Error(t, err)

	_, err = ParsePort(":0")
	assert.Error(t, err)
}

func TestAdvertiser_StopWithoutStart(t *testing.T) {
	a := NewAdvertiser()

	assert.False(t, a.IsRunning())
	assert.Nil(t, a.Info())
	assert.NotPanics(t, a.Stop)
}
