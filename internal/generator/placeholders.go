package generator

// OfflineDescription is the description of a result produced when the provider
// answered without any content.
const OfflineDescription = "Generated in offline mode due to API connectivity issues."

const offlineModule = `// Fallback module - API connectivity issue
module example_module(
    input wire clk,
    input wire reset,
    input wire [3:0] data_in,
    output reg [3:0] data_out
);

always @(posedge clk or posedge reset) begin
    if (reset)
        data_out <= 4'b0000;
    else
        data_out <= data_in;
end

endmodule`

const offlineTestbench = `// Fallback testbench - API connectivity issue
module example_module_tb;

reg clk, reset;
reg [3:0] data_in;
wire [3:0] data_out;

example_module uut (
    .clk(clk),
    .reset(reset),
    .data_in(data_in),
    .data_out(data_out)
);

initial begin
    clk = 0;
    forever #5 clk = ~clk;
end

initial begin
    reset = 1;
    data_in = 4'b0000;
    #10 reset = 0;
    #10 data_in = 4'b1010;
    #10 data_in = 4'b0101;
    #20 $finish;
end

endmodule`

const errorModuleBody = `module error_module(
    input wire error_in,
    output wire error_out
);

assign error_out = error_in;

endmodule`

const errorTestbench = `// Error generating testbench
// Please try again with different settings

module error_module_tb;

reg error_in;
wire error_out;

error_module uut (
    .error_in(error_in),
    .error_out(error_out)
);

initial begin
    error_in = 0;
    #10 error_in = 1;
    #10 $finish;
end

endmodule`

// errorModule returns the stand-in module shown when generation failed. msg
// is embedded in its header comment.
func errorModule(msg string) string {
	return "// Error generating Verilog code: " + msg + "\n" +
		"// Please check your inputs and try again\n\n" +
		errorModuleBody
}
