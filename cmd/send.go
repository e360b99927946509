package cmd

import (
	"fmt"
	"strings"

	"github.com/mj1618/rotator/internal/link"
	"github.com/mj1618/rotator/internal/output"
	"github.com/mj1618/rotator/internal/platform"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <token>",
	Short: "Send a command token to the microcontroller",
	Long: fmt.Sprintf(`Write one command token, newline terminated, to the serial port.
There is no acknowledgement.

Tokens: %s`, strings.Join(tokenNames(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	RunE:  runPorts,
}

func init() {
	rootCmd.AddCommand(sendCmd, portsCmd)
	sendCmd.Flags().String("port", "", "Serial port (default: serial.port from config)")
}

func tokenNames() []string {
	var names []string
	for _, t := range link.Tokens() {
		names = append(names, t.String())
	}
	return names
}

// SendResult is the output of the send command.
type SendResult struct {
	OK    bool   `yaml:"ok"    json:"ok"`
	Token string `yaml:"token" json:"token"`
	Port  string `yaml:"port"  json:"port"`
}

func runSend(cmd *cobra.Command, args []string) error {
	tok, err := link.ParseToken(args[0])
	if err != nil {
		return err
	}
	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = appConfig.Serial.Port
	}

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	l := link.New(appConfig.Serial.Baud, appConfig.Serial.ReadTimeout, link.WithPortLister(provider.PortLister))
	if err := l.Connect(port); err != nil {
		return err
	}
	defer l.Disconnect()

	if err := l.Send(tok); err != nil {
		return err
	}
	return output.Print(SendResult{OK: true, Token: tok.String(), Port: port})
}

func runPorts(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.PortLister == nil {
		return fmt.Errorf("serial port listing not available on this platform")
	}
	ports, err := provider.PortLister.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no serial ports found; connect the microcontroller and retry")
		ports = []string{}
	}
	return output.Print(ports)
}
