package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/database/mongoclient"
	"github.com/Protivsporta/NFTMarketplace/base/database/redisclient"
	"github.com/Protivsporta/NFTMarketplace/base/log"
	"github.com/Protivsporta/NFTMarketplace/base/metrics"
	bValidator "github.com/Protivsporta/NFTMarketplace/base/validator"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/domain/accesscontrol"
	"github.com/Protivsporta/NFTMarketplace/domain/marketplace"
	mmiddleware "github.com/Protivsporta/NFTMarketplace/middleware"
	"github.com/Protivsporta/NFTMarketplace/service/chain"
	"github.com/Protivsporta/NFTMarketplace/service/chain/contract"
	"github.com/Protivsporta/NFTMarketplace/service/query"
	"github.com/Protivsporta/NFTMarketplace/service/redis"
	"github.com/Protivsporta/NFTMarketplace/service/salesbot"
	accesscontrol_repository "github.com/Protivsporta/NFTMarketplace/stores/accesscontrol/repository"
	accesscontrol_usecase "github.com/Protivsporta/NFTMarketplace/stores/accesscontrol/usecase"
	auth_delivery "github.com/Protivsporta/NFTMarketplace/stores/auth/delivery/http"
	auth_middleware "github.com/Protivsporta/NFTMarketplace/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/Protivsporta/NFTMarketplace/stores/auth/usecase"
	hc_delivery "github.com/Protivsporta/NFTMarketplace/stores/healthcheck/delivery/http"
	hc_repo "github.com/Protivsporta/NFTMarketplace/stores/healthcheck/repository"
	hc_usecase "github.com/Protivsporta/NFTMarketplace/stores/healthcheck/usecase"
	marketplace_delivery "github.com/Protivsporta/NFTMarketplace/stores/marketplace/delivery/http"
	marketplace_repository "github.com/Protivsporta/NFTMarketplace/stores/marketplace/repository"
	marketplace_usecase "github.com/Protivsporta/NFTMarketplace/stores/marketplace/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

//	@title			NFT Marketplace API
//	@version		1.0
//	@description	API Document for the NFT Marketplace engine.

// main
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				retrive token from #/auth/post_auth_sign and apply with `bearer {token}`
func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	// init Redis service
	context.Info("init redis cache")
	redisCacheName := viper.GetString("redis_cache.name")
	redisCacheURI := viper.GetString("redis_cache.uri")
	redisCachePwd := viper.GetString("redis_cache.password")
	redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
	redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
		PoolMultiplier: redisCachePoolMultiplier,
		Retry:          true,
	})
	redisCache := redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
		Src: redisCachePool,
	})

	mmiddleware.SetupCache(redisCache)

	// init chain service
	context.Info("init chain service")
	chainId := domain.ChainId(viper.GetInt32("chain.chainId"))
	rpcs := map[int32]string{int32(chainId): viper.GetString("chain.rpcUrl")}
	chainService, err := chain.NewClient(context, &chain.ClientCfg{
		RpcUrls:   rpcs,
		SignerKey: viper.GetString("chain.signerKey"),
	})
	if err != nil {
		context.WithField("err", err).Warn("chainService started with error")
	}

	engineAddress := domain.Address(chainService.SignerAddress().Hex()).ToLower()
	ledger := contract.NewErc20(&contract.Erc20Cfg{
		ChainService: chainService,
		ChainId:      chainId,
		Address:      domain.Address(viper.GetString("chain.paymentToken")),
	})
	registry := contract.NewErc721(&contract.Erc721Cfg{
		ChainService: chainService,
		ChainId:      chainId,
		Address:      domain.Address(viper.GetString("chain.assetRegistry")),
	})

	saleEmitter := salesbot.New(salesbot.Config{
		DiscordBotKey:    viper.GetString("salesbot.discordBotKey"),
		DiscordChannelId: viper.GetString("salesbot.discordChannelId"),
		TokenSymbol:      viper.GetString("salesbot.tokenSymbol"),
		TokenDecimals:    viper.GetInt32("salesbot.tokenDecimals"),
		SiteUrl:          viper.GetString("salesbot.siteUrl"),
		Redis:            redisCache,
	})

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache)
	itemRepo := marketplace_repository.NewItem(q)
	saleRepo := marketplace_repository.NewSale(q, redisCache)
	settingsRepo := marketplace_repository.NewSettings(q)
	accessControlRepo := accesscontrol_repository.New(q)

	hc := hc_usecase.New(hcRepo)
	accessControl := accesscontrol_usecase.New(accessControlRepo)
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"))
	engine := marketplace_usecase.New(context, &marketplace_usecase.MarketplaceUseCaseCfg{
		ItemRepo:      itemRepo,
		SaleRepo:      saleRepo,
		SettingsRepo:  settingsRepo,
		Ledger:        ledger,
		Registry:      registry,
		AccessControl: accessControl,
		SaleEmitter:   saleEmitter,
		EngineAddress: engineAddress,
		InitialSettings: marketplace.AuctionSettings{
			AuctionDuration:     viper.GetInt64("auction.duration"),
			MinimalNumberOfBids: viper.GetInt32("auction.minimalNumberOfBids"),
		},
	})

	adminAddresses := viper.GetStringSlice("admin.addresses")
	for _, addr := range adminAddresses {
		if err := accessControlRepo.Create(context, accesscontrol.Assignment{
			Address: domain.Address(addr),
			Role:    accesscontrol.RoleAdmin,
		}); err != nil {
			context.WithField("err", err).Warn("failed to seed admin assignment")
		}
	}
	authMiddleware := auth_middleware.New(auth, accessControl, adminAddresses)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	marketplace_delivery.New(e, authMiddleware, engine, saleRepo)

	e.GET("/check", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"address": c.Get("address").(domain.Address),
		})
	}, authMiddleware.Auth())

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
