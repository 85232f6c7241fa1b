package rewardconfig

import "go.uber.org/fx"

var Module = fx.Module("rewardconfig",
	fx.Provide(NewResolver),
)
