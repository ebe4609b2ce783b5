package main

import (
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/server"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/util"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	logger.Init(console.New(console.Options{
		Debug:  util.GetEnvBool("DEBUG", false),
		Prefix: "api",
	}))

	server.Init()
}
