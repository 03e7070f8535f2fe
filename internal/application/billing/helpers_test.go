package billing_test

import "github.com/jhoicas/Billing-api/pkg/logger"

func nopLogger() *logger.Logger { return logger.Nop() }
