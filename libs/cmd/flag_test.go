package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

func TestFlagBuilder_SharedFlags(t *testing.T) {
	a := &cobra.Command{Use: "a"}
	b := &cobra.Command{Use: "b"}

	NewFlagBuilder(a, b).
		Flag().String("test-gateway-url", "https://default", "gateway").
		Flag().Int64("test-commerce-id", 12285, "commerce").
		Flag().Duration("test-timeout", time.Second, "timeout").
		Flag().StringSlice("test-banks", []string{"113"}, "banks")

	must.NotNil(t, a.Flags().Lookup("test-gateway-url"))
	must.NotNil(t, b.Flags().Lookup("test-gateway-url"))

	must.NoError(t, b.Flags().Parse([]string{"--test-gateway-url=https://b", "--test-banks=1,2"}))
	must.NoError(t, BindFlags(b))

	should.Equal(t, "https://b", viper.GetString("test-gateway-url"))
	should.Equal(t, int64(12285), viper.GetInt64("test-commerce-id"))
	should.Equal(t, time.Second, viper.GetDuration("test-timeout"))
	should.Equal(t, []string{"1", "2"}, viper.GetStringSlice("test-banks"))
}
