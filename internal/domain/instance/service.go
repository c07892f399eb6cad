package instance

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/message-mint/whatsapp-api/internal/utils/platformerrors"
)

// Service validates callers against team permissions and instance rows.
type Service struct {
	teams     TeamRepository
	instances Repository
	log       zerolog.Logger
}

func NewService(teams TeamRepository, instances Repository, log zerolog.Logger) *Service {
	return &Service{
		teams:     teams,
		instances: instances,
		log:       log.With().Str("component", "instance-service").Logger(),
	}
}

// ValidateUser checks that accessToken maps to a team and that instanceID
// exists, returning the instance row.
func (s *Service) ValidateUser(ctx context.Context, instanceID, accessToken string) (*Instance, error) {
	team, err := s.teams.FindByIDs(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnauthorized,
			"access token is invalid",
			nil,
			"instance-validate-token-001",
		)
	}

	inst, err := s.instances.FindByInstanceID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound,
			"instance id is invalid",
			nil,
			"instance-validate-id-001",
		)
	}

	return inst, nil
}
