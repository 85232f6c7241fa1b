package reward

import (
	"rewardgate/services/identity"
	"rewardgate/services/rewardconfig"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("reward",
	fx.Provide(
		NewService,
		NewHandler,
		func(r *rewardconfig.Resolver) ConfigSource { return r },
		func(g *identity.Gate) Authenticator { return g },
	),
	fx.Invoke(func(r *gin.Engine, h *Handler) {
		h.RegisterRoutes(r)
	}),
)

var WorkerModule = fx.Module("reward.worker",
	fx.Provide(
		NewWorker,
		func(r *rewardconfig.Resolver) ConfigSource { return r },
	),
	fx.Invoke(func(mux *asynq.ServeMux, w *Worker) {
		w.Register(mux)
	}),
)
