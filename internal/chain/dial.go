package chain

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/net/http2"
)

// Dial connects to the node RPC endpoint. The raw rpc client is returned
// alongside the eth client because the wallet-connector identity source
// needs methods ethclient does not expose.
func Dial(ctx context.Context, rpcURL string) (*rpc.Client, *ethclient.Client, error) {
	httpClient, err := newRPCHTTPClient()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create rpc http client: %w", err)
	}

	rpcClient, err := rpc.DialOptions(ctx, rpcURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to dial %s: %w", rpcURL, err)
	}

	return rpcClient, ethclient.NewClient(rpcClient), nil
}

func newRPCHTTPClient() (*http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: tr,
		Timeout:   60 * time.Second,
	}, nil
}
