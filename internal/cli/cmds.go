package cli

func regCommands() {
	//Identity
	identityCmd.AddCommand(identity_newCmd)
	identityCmd.AddCommand(identity_listCmd)

	//Root
	rootCmd.AddCommand(identityCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(tipCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(ownersCmd)
	rootCmd.AddCommand(transferCmd)
}
