package salesbot

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"github.com/viney-shih/goroutines"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/log"
	"github.com/Protivsporta/NFTMarketplace/base/metrics"
	"github.com/Protivsporta/NFTMarketplace/domain/keys"
	"github.com/Protivsporta/NFTMarketplace/domain/marketplace"
	"github.com/Protivsporta/NFTMarketplace/service/redis"
)

// SoldChannel is the redis pubsub channel carrying completed sales.
var SoldChannel = keys.RedisKey(keys.PfxMarketplace, "sold")

type Config struct {
	DiscordBotKey    string
	DiscordChannelId string
	TokenSymbol      string
	TokenDecimals    int32
	SiteUrl          string
	Redis            redis.Service
}

type impl struct {
	cfg        Config
	discord    *discordgo.Session
	redis      redis.Service
	met        metrics.Service
	workerPool *goroutines.Pool
}

// New builds a marketplace.SaleEmitter. Discord announcement is disabled when
// the bot key is empty, redis fanout when no redis service is given.
func New(cfg Config) marketplace.SaleEmitter {
	var discord *discordgo.Session
	if cfg.DiscordBotKey != "" {
		session, err := discordgo.New(fmt.Sprintf("Bot %s", cfg.DiscordBotKey))
		if err != nil {
			panic("failed to connect to discord")
		}
		discord = session
	}

	return &impl{
		cfg:        cfg,
		discord:    discord,
		redis:      cfg.Redis,
		met:        metrics.New("salesbot"),
		workerPool: goroutines.NewPool(4, goroutines.WithTaskQueueLength(256)),
	}
}

func (im *impl) EmitSold(c ctx.Ctx, sale *marketplace.Sale) {
	err := im.workerPool.Schedule(func() {
		im.met.BumpSum("sold", 1, "kind", string(sale.Kind))
		im.publish(c, sale)
		im.announce(c, sale)
	})
	if err != nil {
		c.WithField("err", err).Warn("failed to schedule sold event")
	}
}

func (im *impl) publish(c ctx.Ctx, sale *marketplace.Sale) {
	if im.redis == nil {
		return
	}
	msg, err := json.Marshal(sale)
	if err != nil {
		c.WithField("err", err).Error("failed to marshal sale")
		return
	}
	if err := im.redis.Publish(c, SoldChannel, msg); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": sale.ItemId,
		}).Warn("failed to publish sale")
	}
}

func (im *impl) announce(c ctx.Ctx, sale *marketplace.Sale) {
	if im.discord == nil {
		return
	}

	price, _ := decimal.New(int64(sale.Price), -im.cfg.TokenDecimals).Float64()

	msg := &discordgo.MessageEmbed{
		Title:       "Item sold!",
		Description: fmt.Sprintf("%s/item/%d", im.cfg.SiteUrl, sale.ItemId),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Seller", Value: string(sale.Seller)},
			{Name: "Buyer", Value: string(sale.Buyer)},
			{Name: "Kind", Value: string(sale.Kind)},
			{Name: "Price", Value: fmt.Sprintf("%s %s", strconv.FormatFloat(price, 'f', -1, 64), im.cfg.TokenSymbol)},
		},
	}

	if _, err := im.discord.ChannelMessageSendEmbed(im.cfg.DiscordChannelId, msg); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": sale.ItemId,
		}).Warn("failed to announce sale")
	}
}
