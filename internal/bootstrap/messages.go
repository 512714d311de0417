package bootstrap

// Operator-facing startup messages. Their wording is part of the contract;
// change them deliberately.

const markerConflictMessage = `============================================
Instance marker file %s already exists.
If you are sure that cadenza is not running, you can delete this file and
start cadenza again.
============================================
`

const welcomeMessage = `==========================================================================
Welcome to Cadenza %s!

To get this party started, you need to edit the configuration file, which
resides under the following path:

    %s

Then you can start the server and listen to whatever you like.
Have fun!
==========================================================================
`

const newConfigMessage = "New configuration file was written to:\n%s\n"
