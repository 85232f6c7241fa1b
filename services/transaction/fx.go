package transaction

import (
	"rewardgate/services/quota"

	"go.uber.org/fx"
)

var Module = fx.Module("transaction",
	fx.Provide(
		NewRecorder,
		func(e *quota.Enforcer) QuotaIncrementer { return e },
	),
)
