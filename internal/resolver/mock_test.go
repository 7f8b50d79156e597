package resolver

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/ror-cli/pkg/ror"
)

type mockRORClient struct {
	mock.Mock
}

func (m *mockRORClient) MatchAffiliation(ctx context.Context, affiliation string) (*ror.SearchResponse, error) {
	args := m.Called(ctx, affiliation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ror.SearchResponse), args.Error(1)
}

type countingPacer struct {
	waits int
	err   error
}

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return p.err
}

func item(name, id string, chosen bool) ror.Item {
	return ror.Item{Organization: ror.Organization{Name: name, ID: id}, Chosen: chosen}
}
