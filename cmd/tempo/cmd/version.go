package cmd

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Show the tempo version and build time.",
		Usage: "tempo version",
		Run: func(env *Env, args []string) error {
			printVersion(env.Stdout)
			return nil
		},
	})
}
