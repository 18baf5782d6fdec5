// Package logger provee el Zap singleton del registry con scoping por contexto.
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context scoping: cada request lleva un logger con request_id y campos
//     propios sin crear un core nuevo.
//   - Environments: "dev" consola con colores, "prod" JSON.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En controllers/services:
//
//	log := logger.From(ctx)
//	log.Info("cluster registered", logger.ClusterID(id))
package logger
