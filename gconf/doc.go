/*

Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package keeps a single configuration object under the "_c:<package>"
key. The configuration is loaded from the "conf" section of a genesis
document and can later be replaced by its owner.

Not being able to get a configuration value is a critical condition for the
application and there is no recovery path for the client. Application must be
terminated and configured correctly.

*/
package gconf
