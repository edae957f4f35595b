package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	table := DefaultRouteTable()

	tests := []struct {
		path string
		want RouteClass
	}{
		{"/", RoutePublic},
		{"/about", RoutePublic},
		{"/pricing", RoutePublic},
		{"/contact", RoutePublic},
		{"/sign-in", RouteAuth},
		{"/sign-up", RouteAuth},
		{"/dashboard", RouteProtected},
		{"/dashboard/revenue", RouteProtected},
		{"/analytics", RouteProtected},
		{"/settings", RouteProtected},
		{"/scanner", RouteProtected},
		{"/events", RouteProtected},
		{"/events/create", RouteProtected},
		{"/events/create/step-2", RouteProtected},
		{"/events/abc123", RoutePublicEventDetail},
		{"/events/jakarta-music-fest", RoutePublicEventDetail},
		{"/events/abc123/edit", RouteProtected},
		{"/events/edit", RouteProtected},
		// unmatched paths forward as public
		{"/robots.txt", RoutePublic},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(table, tt.path), "path %s", tt.path)
	}
}

func TestClassifyCustomTable(t *testing.T) {
	table := RouteTable{
		Auth:      []string{"/login"},
		Protected: []string{"/admin"},
	}
	assert.Equal(t, RouteAuth, Classify(table, "/login"))
	assert.Equal(t, RouteProtected, Classify(table, "/admin/users"))
	assert.Equal(t, RoutePublic, Classify(table, "/sign-in"))
}
