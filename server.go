package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thepradipthapa/livechat/api/middleware"
	"github.com/thepradipthapa/livechat/api/routes"
	"github.com/thepradipthapa/livechat/config"
	"github.com/thepradipthapa/livechat/db"
	"github.com/thepradipthapa/livechat/services"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	if err := config.LoadConfig(configPath); err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	if err := db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}
	if err := db.EnsureMessageIndexes(db.ORM); err != nil {
		panic("Failed to create message indexes: " + err.Error())
	}

	if err := services.InitRedis(); err != nil {
		panic("Failed to connect to Redis: " + err.Error())
	}
	defer services.CloseRedis()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := services.InitRabbitMQ(); err != nil {
		log.Printf("RabbitMQ unavailable, email delivery and push disabled: %v", err)
	} else {
		defer services.CloseRabbitMQ()
		if err := services.StartEmailWorker(ctx); err != nil {
			log.Printf("Failed to start email worker: %v", err)
		}
		if err := services.StartMessageEventConsumer(ctx, "chat_push"); err != nil {
			log.Printf("Failed to start message event consumer: %v", err)
		}
	}

	router := gin.Default()
	router.Use(middleware.PrometheusMiddleware("livechat"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.PublicApi(router)
	routes.ChatApi(router)

	addr := ":8080"
	if config.AppConfig.Backend.Port != 0 {
		addr = fmt.Sprintf("%s:%d", config.AppConfig.Backend.Host, config.AppConfig.Backend.Port)
	}
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
