// Command arcade-sign produces a signed wallet login body, for poking at a
// running server with curl.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/vibearcade/arcade/internal/eth"
)

type loginBody struct {
	WalletAddress string `json:"wallet_address"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
}

func main() {
	app := &cli.App{
		Name:  "arcade-sign",
		Usage: "sign a Vibe Arcade wallet login message",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "key",
				Usage:   "hex private key; a random key is used when empty",
				EnvVars: []string{"ARCADE_SIGN_KEY"},
			},
			&cli.StringFlag{
				Name:  "message",
				Usage: "message to sign instead of the default login text",
			},
			&cli.BoolFlag{
				Name:  "lowercase",
				Usage: "send the address lower-cased",
			},
		},
		Action: sign,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func sign(c *cli.Context) error {
	var (
		signer *eth.Signer
		err    error
	)
	if key := c.String("key"); key != "" {
		signer, err = eth.SignerFromHex(key)
	} else {
		signer, err = eth.GenerateSigner()
	}
	if err != nil {
		return err
	}

	address := signer.Address().Hex()
	message := c.String("message")
	if message == "" {
		message = eth.LoginMessage(address, time.Now())
	}

	signature, err := signer.SignMessage(message)
	if err != nil {
		return err
	}

	if c.Bool("lowercase") {
		address = strings.ToLower(address)
	}

	out, err := json.MarshalIndent(loginBody{WalletAddress: address, Message: message, Signature: signature}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}
