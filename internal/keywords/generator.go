package keywords

import "context"

// Generator produces search keywords for one tariff item context.
type Generator interface {
	Generate(ctx context.Context, item Context) ([]string, error)
}
