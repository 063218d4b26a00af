package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"hostlink/pkg/handlers/security"

	"github.com/spf13/cobra"
)

var encodeCipherKey int

var encodeCmd = &cobra.Command{
	Use:   "encode <secret> [cipher_key]",
	Short: "Encode a secret for security.log_key",
	Long:  "Encodes a secret with the cipher key and prints the hex value to store in security.log_key.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := strings.TrimSpace(args[0])
		if secret == "" {
			return fmt.Errorf("secret must not be empty")
		}

		key := encodeCipherKey
		if len(args) > 1 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("cipher key %q is not an integer", args[1])
			}
			key = parsed
		}

		fmt.Println(security.Encode(secret, key))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().IntVar(&encodeCipherKey, "cipher-key", security.DefaultCipherKey, "cipher key used to encode the secret")
}
