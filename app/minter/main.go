package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/pflag"

	"github.com/Protivsporta/NFTMarketplace/base/log"
)

// minter is a small operational tool minting a new marketplace item to an
// address through the running api server.
func main() {
	var (
		apiUrl    = pflag.String("api", "http://localhost:9090", "marketplace api base url")
		recipient = pflag.String("to", "", "address which receives the minted asset")
		token     = pflag.String("token", "", "bearer token of the caller")
	)
	pflag.Parse()

	logger := log.Log()

	if *recipient == "" {
		logger.Error("missing --to address")
		pflag.Usage()
		return
	}

	body, err := json.Marshal(map[string]string{"recipient": *recipient})
	if err != nil {
		logger.WithField("err", err).Error("failed to marshal request")
		return
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/items", *apiUrl), bytes.NewReader(body))
	if err != nil {
		logger.WithField("err", err).Error("failed to build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	client := http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		logger.WithField("err", err).Error("request failed")
		return
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		logger.WithField("status", resp.StatusCode).WithField("body", string(payload)).Error("mint failed")
		return
	}

	logger.WithField("recipient", *recipient).Info("item minted")
	fmt.Println(string(payload))
}
